package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E149)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No fragsync.json could be located. The dashboard falls back to the built-in configuration when this happens at runtime.",
		DocURL:   "https://fragsync.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Configuration parse failed",
		Detail:   "fragsync.json exists but is not valid JSON.",
		DocURL:   "https://fragsync.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration is syntactically valid JSON but violates the schema: missing user ID, missing version, or a module without name, display name, or path.",
		DocURL:   "https://fragsync.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unknown persona",
		Detail:   "No configuration is registered for the requested persona ID.",
		DocURL:   "https://fragsync.dev/docs/errors/E104",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
		Detail:   "The configured HTTP listen address could not be parsed.",
		DocURL:   "https://fragsync.dev/docs/errors/E105",
	},

	// ============================================
	// Snapshot Errors (E200-E249)
	// ============================================

	"E201": {
		Category: CategorySnapshot,
		Message:  "Snapshot corrupt",
		Detail:   "The persisted snapshot could not be decoded. The store starts from defaults instead.",
		DocURL:   "https://fragsync.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategorySnapshot,
		Message:  "Snapshot version unsupported",
		Detail:   "The snapshot was written by a newer release and cannot be read by this one.",
		DocURL:   "https://fragsync.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategorySnapshot,
		Message:  "Snapshot backend unavailable",
		Detail:   "The configured persistence backend could not be opened.",
		DocURL:   "https://fragsync.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategorySnapshot,
		Message:  "Snapshot store closed",
		Detail:   "An operation was attempted on a snapshot store after Close.",
		DocURL:   "https://fragsync.dev/docs/errors/E204",
	},

	// ============================================
	// Bus Errors (E300-E349)
	// ============================================

	"E301": {
		Category: CategoryBus,
		Message:  "Handler panic",
		Detail:   "A subscriber panicked while handling a message. Delivery to the remaining subscribers continued.",
		DocURL:   "https://fragsync.dev/docs/errors/E301",
	},

	// ============================================
	// Synchronization Errors (E400-E449)
	// ============================================

	"E401": {
		Category: CategorySync,
		Message:  "Unknown sync kind",
		Detail:   "A state:sync message named an entity kind the service does not recognize. Known kinds are cart, user, navigation, and orders.",
		DocURL:   "https://fragsync.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategorySync,
		Message:  "Payload type mismatch",
		Detail:   "A message arrived on a known channel with a payload of the wrong type and was dropped.",
		DocURL:   "https://fragsync.dev/docs/errors/E402",
	},

	// ============================================
	// Validation Errors (E450-E499)
	// ============================================

	"E451": {
		Category: CategoryValidation,
		Message:  "Invalid cart line",
		Detail:   "A cart line with an empty ID, non-positive quantity, or negative price was rejected.",
		DocURL:   "https://fragsync.dev/docs/errors/E451",
	},
	"E452": {
		Category: CategoryValidation,
		Message:  "Illegal order transition",
		Detail:   "Order statuses only move forward (pending, processing, shipped, delivered), with cancellation allowed from any non-terminal status.",
		DocURL:   "https://fragsync.dev/docs/errors/E452",
	},

	// ============================================
	// CLI Errors (E500-E549)
	// ============================================

	"E501": {
		Category: CategoryCLI,
		Message:  "Unknown snapshot backend",
		Detail:   "The requested backend is not one of memory, disk, sqlite, or s3.",
		DocURL:   "https://fragsync.dev/docs/errors/E501",
	},
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
