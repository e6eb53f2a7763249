package bridge

// Row is one untyped record as the spreadsheet bridge returns it. Pull
// responses are header-name-driven on the remote side, so the shape is not
// trusted: the syncer coerces each row explicitly and skips rows that fail
// required-field checks.
type Row map[string]any

// Outbound wire shapes. The remote side keys its sheets by human-readable
// names, so each pushed row carries both the resolved display name and the
// raw identifiers needed to reconstruct the record on pull.

// MachineLogRow covers temperature and maintenance records.
type MachineLogRow struct {
	Machine    string `json:"machine"`
	Date       string `json:"date"`
	RecordedBy string `json:"recordedBy"`
	ID         string `json:"id"`
	MachineID  string `json:"machineId"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	Value      any    `json:"value"`
	Target     any    `json:"target"`
	Notes      string `json:"notes"`
	AI         string `json:"ai"`
	Photo      string `json:"photo"`
}

// MeterLogRow covers electricity meter readings.
type MeterLogRow struct {
	Date       string  `json:"date"`
	MeterName  string  `json:"meterName"`
	Value      float64 `json:"value"`
	RecordedBy string  `json:"recordedBy"`
	Photo      string  `json:"photo"`
	ID         string  `json:"id"`
	MeterID    string  `json:"meterId"`
	Timestamp  string  `json:"timestamp"`
}

// GeneratorLogRow covers run-hour and service records.
type GeneratorLogRow struct {
	Date       string `json:"date"`
	RecordedBy string `json:"recordedBy"`
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	GenID      string `json:"genId"`
	GenName    string `json:"genName"`
	Type       string `json:"type"`
	RunHours   any    `json:"runHours"`
	Notes      string `json:"notes"`
	Parts      string `json:"parts"`
	Photo      string `json:"photo"`
	AI         string `json:"ai"`
}

// UserRow is the wire shape for ADD_USER.
type UserRow struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
