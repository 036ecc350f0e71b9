package config

// Process exit statuses. The batch tasks run under cron supervision, so
// each failure cause gets its own code.
const (
	// Task dispatch
	StatusNoTaskHandler = 1
	StatusBadTaskParam  = 2

	// Database
	StatusGeneralSQLError = 10
	StatusNoDBFile        = 11

	// Config
	StatusNoConfigFile          = 20
	StatusConfigUnparseable     = 21
	StatusRequiredConfigMissing = 22

	// Outbound network
	StatusOutgoingNetworkError = 30

	// OpenID login
	StatusOpenIDError = 40
)
