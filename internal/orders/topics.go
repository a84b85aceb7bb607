package orders

const (
	TopicOrderCreated    = "order.created"
	TopicOrderUpdated    = "order.updated"
	TopicListingStockLow = "listing.stock.low"
)

// PartitionKey keeps every event of one order (or listing) on one partition.
func PartitionKey(id string) []byte { return []byte(id) }
