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
	// Config Errors (E100-E119)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No loopline.json was found in the working directory or any parent directory.",
		DocURL:   "https://loopline.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Config file is not valid JSON",
		Detail:   "loopline.json exists but could not be parsed.",
		DocURL:   "https://loopline.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration field holds a value outside its allowed range.",
		DocURL:   "https://loopline.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Config write failed",
		Detail:   "The configuration file could not be written.",
		DocURL:   "https://loopline.dev/docs/errors/E104",
	},

	// ============================================
	// Storage Errors (E120-E139)
	// ============================================

	"E121": {
		Category: CategoryStorage,
		Message:  "Credential storage unavailable",
		Detail:   "The credential storage backend could not be opened.",
		DocURL:   "https://loopline.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryStorage,
		Message:  "Unknown storage driver",
		Detail:   "The configured storage driver is not one of: memory, file, sqlite.",
		DocURL:   "https://loopline.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryStorage,
		Message:  "Credential read failed",
		Detail:   "The stored credential could not be read back from storage.",
		DocURL:   "https://loopline.dev/docs/errors/E123",
	},

	// ============================================
	// Auth Errors (E140-E159)
	// ============================================

	"E141": {
		Category: CategoryAuth,
		Message:  "Not logged in",
		Detail:   "This command requires a stored credential and none was found.",
		DocURL:   "https://loopline.dev/docs/errors/E141",
	},
	"E142": {
		Category: CategoryAuth,
		Message:  "Login rejected",
		Detail:   "The backend rejected the email and password combination.",
		DocURL:   "https://loopline.dev/docs/errors/E142",
	},
	"E143": {
		Category: CategoryAuth,
		Message:  "Session expired",
		Detail:   "The stored credential is expired or was rejected by the backend.",
		DocURL:   "https://loopline.dev/docs/errors/E143",
	},
	"E144": {
		Category: CategoryAuth,
		Message:  "Registration failed",
		Detail:   "The backend rejected the registration fields.",
		DocURL:   "https://loopline.dev/docs/errors/E144",
	},
	"E145": {
		Category: CategoryAuth,
		Message:  "Access denied",
		Detail:   "You are logged in, but this account is not allowed to perform the operation.",
		DocURL:   "https://loopline.dev/docs/errors/E145",
	},

	// ============================================
	// Backend Errors (E160-E179)
	// ============================================

	"E161": {
		Category: CategoryBackend,
		Message:  "Backend unreachable",
		Detail:   "No response was received from the backend. It may be down or the base URL misconfigured.",
		DocURL:   "https://loopline.dev/docs/errors/E161",
	},
	"E162": {
		Category: CategoryBackend,
		Message:  "Backend error",
		Detail:   "The backend reported an internal failure.",
		DocURL:   "https://loopline.dev/docs/errors/E162",
	},

	// ============================================
	// CLI Errors (E180-E199)
	// ============================================

	"E181": {
		Category: CategoryCLI,
		Message:  "Invalid command usage",
		Detail:   "The command was invoked with missing or conflicting arguments.",
		DocURL:   "https://loopline.dev/docs/errors/E181",
	},
	"E182": {
		Category: CategoryCLI,
		Message:  "Dev server failed to start",
		Detail:   "The local development backend could not bind its listen address.",
		DocURL:   "https://loopline.dev/docs/errors/E182",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// GetTemplate returns the template for a code, if registered.
func GetTemplate(code string) (ErrorTemplate, bool) {
	template, ok := registry[code]
	return template, ok
}

// GetAllCodes returns every registered error code.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
