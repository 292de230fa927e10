package commands

// Error messages
const (
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrPromptSourceConflict     = "use either --system-prompt or --template, not both"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgNoTemplates              = "No templates found."
	MsgNoModels                 = "No models installed."
)

// TimestampDisplayFormat is used in list output.
const TimestampDisplayFormat = "2006-01-02 15:04"
