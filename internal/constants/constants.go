package constants

const (
	Create      = "CREATE"
	BatchCreate = "BATCH_CREATE"
	Update      = "UPDATE"
	Delete      = "DELETE"
	BulkDelete  = "BULK_DELETE"
	AddReview   = "ADD_REVIEW"
	AdjustPrice = "ADJUST_PRICE"
	CreateIndex = "CREATE_INDEX"
	DropIndex   = "DROP_INDEX"
)
