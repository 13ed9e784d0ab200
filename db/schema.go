package db

// ColumnInfo mirrors one row of pragma_table_info
type ColumnInfo struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	NotNull    bool        `json:"notnull"`
	Default    interface{} `json:"dflt_value"`
	PrimaryKey bool        `json:"pk"`
}

// IndexInfo mirrors one row of pragma_index_list
type IndexInfo struct {
	Name   string `json:"name"`
	Unique bool   `json:"unique"`
	Origin string `json:"origin"`
}

// TableInfo is the structural metadata for a single table or view
type TableInfo struct {
	Name    string       `json:"name"`
	SQL     string       `json:"sql"`
	Columns []ColumnInfo `json:"columns"`
	Indexes []IndexInfo  `json:"indexes"`
}

// pragmaColumn scans rows from pragma_table_info in either form
type pragmaColumn struct {
	CID     int     `db:"cid"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	NotNull int     `db:"notnull"`
	Default *string `db:"dflt_value"`
	PK      int     `db:"pk"`
}

// pragmaIndex scans rows from pragma_index_list in either form
type pragmaIndex struct {
	Seq     int    `db:"seq"`
	Name    string `db:"name"`
	Unique  int    `db:"unique"`
	Origin  string `db:"origin"`
	Partial int    `db:"partial"`
}
