package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Connection
	FieldConnID  = "conn_id"
	FieldShortID = "short_id"
	FieldRole    = "role"
	FieldEvent   = "event"
	FieldRemote  = "remote_addr"

	// Chat
	FieldMessageID = "message_id"
	FieldClients   = "clients"
	FieldOnline    = "online"

	// Uploads
	FieldBlobKey = "blob_key"

	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
