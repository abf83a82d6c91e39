package models

// MConfig Structure
type MConfig struct {
	Name        string              `yaml:"name"`
	Host        string              `yaml:"host"`
	Port        int                 `yaml:"port"`
	LogLevel    string              `yaml:"log_level"`
	GrpcHost    string              `yaml:"grpc_host"`
	GrpcPort    int                 `yaml:"grpc_port"`
	ReportPath  string              `yaml:"report_path"`
	RefreshSecs int                 `yaml:"refresh_interval_seconds"`
	Storage     MStorageConfig      `yaml:"storage"`
	Datasets    []MDatasetConfig    `yaml:"datasets"`
	Comparisons []MComparisonConfig `yaml:"comparisons"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "none", "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Schema             string `yaml:"schema"`
}

// MDatasetConfig describes one input file and how it is prepared.
type MDatasetConfig struct {
	Name        string   `yaml:"name"`
	Path        string   `yaml:"path"`
	Format      string   `yaml:"format,omitempty"`    // "csv" (default) or "xlsx"
	Delimiter   string   `yaml:"delimiter,omitempty"` // single rune, default ","
	Sheet       string   `yaml:"sheet,omitempty"`     // xlsx only
	DateColumns []string `yaml:"date_columns"`
	DateFormat  string   `yaml:"date_format,omitempty"` // Go layout; detected when empty
	Columns     []string `yaml:"columns,omitempty"`     // numeric columns; all non-date columns when empty
	Resample    string   `yaml:"resample,omitempty"`    // "", "W", "M", "Q" or "Y"
	Calendar    string   `yaml:"calendar,omitempty"`    // exchange MIC, e.g. "xnys"
}

// MSeriesRef points at one column of one dataset.
type MSeriesRef struct {
	Dataset string `yaml:"dataset" json:"dataset"`
	Column  string `yaml:"column" json:"column"`
	Label   string `yaml:"label,omitempty" json:"label"`
}

// MComparisonConfig declares a dual-axis comparison between two series.
type MComparisonConfig struct {
	Name            string     `yaml:"name"`
	Title           string     `yaml:"title,omitempty"`
	Primary         MSeriesRef `yaml:"primary"`
	Secondary       MSeriesRef `yaml:"secondary"`
	Period          string     `yaml:"period,omitempty"` // join key when datasets differ, default "M"
	RollingWindow   int        `yaml:"rolling_window,omitempty"`
	MaxLag          int        `yaml:"max_lag,omitempty"`
	PrimaryLimits   []float64  `yaml:"primary_limits,omitempty"`
	SecondaryLimits []float64  `yaml:"secondary_limits,omitempty"`
}
