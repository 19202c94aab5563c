package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldStore       = "store"
	FieldID          = "id"
	FieldGeneration  = "generation"
	FieldCount       = "count"
	FieldAccountID   = "account_id"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldTxType      = "transaction_type"
	FieldMatched     = "matched"
	FieldUserID      = "user_id"
	FieldEmail       = "email"
	FieldBackend     = "backend"
	FieldFilterType  = "filter_type"
	FieldFilterCat   = "filter_category"
	FieldDateFrom    = "date_from"
	FieldDateTo      = "date_to"
	FieldResultCount = "result_count"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentStore       = "store"
	ComponentCoordinator = "coordinator"
	ComponentView        = "view"
	ComponentSession     = "session"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSeed        = "seed"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpAdjust   = "adjust"
	OpLink     = "link"
	OpUnlink   = "unlink"
	OpForward  = "forward"
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpSeed     = "seed"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeNetwork    = "network_error"
	ErrorTypeAuth       = "auth_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeInternal   = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category field
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithMutation adds the fields every store mutation logs
func (f LogFields) WithMutation(store, op, id string, generation uint64) LogFields {
	f[FieldStore] = store
	f[FieldOperation] = op
	f[FieldID] = id
	f[FieldGeneration] = generation
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, accountID, txType, category, amount string) LogFields {
	f[FieldID] = id
	f[FieldAccountID] = accountID
	f[FieldTxType] = txType
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
