package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Render pipeline (Q001-Q019)

	"Q001": {
		Category:   CategoryRender,
		Message:    "Foreign node description skipped",
		Detail:     "A node description carried a constructor marker. Descriptions must be built with the construction API or decoded without a constructor field.",
		Suggestion: "Remove the constructor field from the description",
	},
	"Q002": {
		Category: CategoryRender,
		Message:  "Render panicked",
		Detail:   "A component or element diff panicked. The subtree was marked void and its siblings rendered normally.",
	},
	"Q003": {
		Category:   CategoryRender,
		Message:    "Runaway render",
		Detail:     "A component marked itself dirty on every render pass. Rendering stopped at the pass limit and the last output was kept.",
		Suggestion: "Avoid writing state that the render function also reads",
	},
	"Q004": {
		Category: CategoryRender,
		Message:  "Ref callback panicked",
		Detail:   "A ref callback panicked while being applied. The panic was swallowed.",
	},
	"Q005": {
		Category:   CategoryRender,
		Message:    "Duplicate sibling key",
		Detail:     "Two siblings share a key. The first keeps its match; later duplicates are mounted fresh.",
		Suggestion: "Keys must be unique among siblings",
	},
	"Q006": {
		Category:   CategoryReactive,
		Message:    "Circular update",
		Detail:     "A scheduled job re-queued itself too many times within one flush and was dropped for the rest of the flush.",
		Suggestion: "Check for watchers that write a value they also read",
	},
	"Q007": {
		Category: CategoryReactive,
		Message:  "Callback panicked",
		Detail:   "A scheduled job, next-tick callback, event handler, cleanup or unmount hook panicked. The panic was swallowed.",
	},

	// Tree descriptions (Q020-Q039)

	"Q020": {
		Category: CategoryDecode,
		Message:  "Invalid tree description",
		Detail:   "The description is not valid YAML or JSON.",
	},
	"Q021": {
		Category:   CategoryDecode,
		Message:    "Invalid node",
		Detail:     "A node must have either a tag or text, not both.",
		Suggestion: "Use tag for elements, text for text nodes, and neither for fragments",
	},
	"Q022": {
		Category:   CategoryDecode,
		Message:    "Invalid prop",
		Detail:     "Event handler props cannot be described in data.",
		Suggestion: "Attach handlers in Go code after decoding",
	},

	// Host elements (Q040-Q059)

	"Q040": {
		Category:   CategoryElement,
		Message:    "Invalid element definition",
		Suggestion: "Custom element tags must contain a hyphen, and every field name must be unique",
	},
	"Q041": {
		Category: CategoryElement,
		Message:  "Element already defined",
		Detail:   "A definition for this tag is already registered with the document.",
	},
	"Q042": {
		Category: CategoryElement,
		Message:  "Lifecycle hook panicked",
		Detail:   "A host element hook, watch or controller callback panicked. The element kept running.",
	},
	"Q043": {
		Category:   CategoryElement,
		Message:    "Element not defined",
		Suggestion: "Define the element before mounting it",
	},

	// Configuration (Q120-Q139)

	"Q120": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "quark.json was not found in the current directory or any parent.",
	},
	"Q121": {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "quark.json could not be parsed.",
	},
	"Q122": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},

	// CLI (Q140-Q149)

	"Q140": {
		Category: CategoryCLI,
		Message:  "Input file not readable",
	},
	"Q141": {
		Category: CategoryCLI,
		Message:  "Invalid output target",
		Detail:   "Output must be a directory path or an s3://bucket/prefix URL.",
	},

	// Snapshots (Q150-Q159)

	"Q150": {
		Category: CategorySnapshot,
		Message:  "Snapshot store failed",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
