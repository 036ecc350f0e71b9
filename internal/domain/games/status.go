package games

// PropStatus is a three-state flag for compatibility fields: besides
// yes and no we need to record that the Steam API hasn't told us the
// answer yet. The int values are what lands in the database.
type PropStatus int

const (
	StatusUnchecked PropStatus = 0
	StatusNo        PropStatus = 1
	StatusYes       PropStatus = 2
)

// StatusFromInt decodes a stored value. Anything out of range maps to
// StatusUnchecked so a damaged row degrades to "not verified" instead
// of poisoning a whole listing query.
func StatusFromInt(v int) PropStatus {
	switch v {
	case 1:
		return StatusNo
	case 2:
		return StatusYes
	default:
		return StatusUnchecked
	}
}

func (s PropStatus) String() string {
	switch s {
	case StatusNo:
		return "no"
	case StatusYes:
		return "yes"
	default:
		return "unchecked"
	}
}
