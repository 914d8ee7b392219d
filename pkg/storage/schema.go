package storage

const (
	// Primary key attributes
	AttrPK = "pk"
	AttrSK = "sk"

	// GSI1: user -> enrolled courses
	AttrGSI1PK = "gsi1pk"
	AttrGSI1SK = "gsi1sk"
	IndexGSI1  = "GSI1"

	// GSI2: course -> threads
	AttrGSI2PK = "gsi2pk"
	AttrGSI2SK = "gsi2sk"
	IndexGSI2  = "GSI2"
)

// TableSchema describes the single-table layout: generic pk/sk primary
// key plus two global secondary indexes.
type TableSchema struct {
	TableName string
	// Primary key
	PartitionKey string
	SortKey      string
	// Global secondary indexes
	GSI1PartitionKey string
	GSI1SortKey      string
	GSI1Name         string
	GSI2PartitionKey string
	GSI2SortKey      string
	GSI2Name         string
}

// GetTableSchema returns the schema configuration for the course table.
// The table name is environment-provided, not fixed.
func GetTableSchema(tableName string) TableSchema {
	return TableSchema{
		TableName:        tableName,
		PartitionKey:     AttrPK,
		SortKey:          AttrSK,
		GSI1PartitionKey: AttrGSI1PK,
		GSI1SortKey:      AttrGSI1SK,
		GSI1Name:         IndexGSI1,
		GSI2PartitionKey: AttrGSI2PK,
		GSI2SortKey:      AttrGSI2SK,
		GSI2Name:         IndexGSI2,
	}
}
