package kvstore

// Error Messages
const (
	ErrMsgGetRecordFailed    = "failed to get record"
	ErrMsgSetRecordFailed    = "failed to set record"
	ErrMsgDeleteRecordFailed = "failed to delete record"
	ErrMsgPruneFailed        = "failed to prune records"
)
