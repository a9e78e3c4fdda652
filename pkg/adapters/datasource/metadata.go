package datasource

// TableStatsRow is one row of the table-level catalog query.
type TableStatsRow struct {
	TableName   string `json:"table_name"`
	Engine      string `json:"engine,omitempty"`
	RowCount    int64  `json:"row_count"`
	DataBytes   int64  `json:"data_bytes"`
	IndexBytes  int64  `json:"index_bytes"`
	TableType   string `json:"table_type,omitempty"`
	AutoIncr    *int64 `json:"auto_increment,omitempty"`
	TableSchema string `json:"table_schema,omitempty"`
}

// TotalBytes returns the combined data and index size.
func (t TableStatsRow) TotalBytes() int64 {
	return t.DataBytes + t.IndexBytes
}

// ColumnRow is one row of the column catalog query.
type ColumnRow struct {
	ColumnName       string  `json:"column_name"`
	DataType         string  `json:"data_type"`
	ColumnType       string  `json:"column_type,omitempty"`
	IsNullable       bool    `json:"is_nullable"`
	IsPrimaryKey     bool    `json:"is_primary_key"`
	Extra            string  `json:"extra,omitempty"`
	DefaultValue     *string `json:"default_value,omitempty"`
	MaxLength        *int64  `json:"max_length,omitempty"`
	NumericPrecision *int64  `json:"numeric_precision,omitempty"`
	OrdinalPosition  int     `json:"ordinal_position"`
}

// IsAutoIncrement reports whether the column is auto-generated.
func (c ColumnRow) IsAutoIncrement() bool {
	switch c.Extra {
	case "auto_increment", "identity":
		return true
	}
	return false
}

// ForeignKeyRow is one row of the key/constraint-usage catalog query.
type ForeignKeyRow struct {
	ConstraintName string `json:"constraint_name"`
	SourceTable    string `json:"source_table"`
	SourceColumn   string `json:"source_column"`
	TargetTable    string `json:"target_table"`
	TargetColumn   string `json:"target_column"`
	UpdateRule     string `json:"update_rule,omitempty"`
	DeleteRule     string `json:"delete_rule,omitempty"`
}
