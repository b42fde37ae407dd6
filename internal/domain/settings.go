package domain

// Keys of the app_config singleton rows.
const (
	ConfigBasePrompt       = "base_prompt"
	ConfigAPIKey           = "api_key"
	ConfigModel            = "model"
	ConfigProvider         = "provider"
	ConfigDesignerTemplate = "prompt_designer_template"

	// All-jobs archive cache metadata shares the same key/value table.
	ConfigAllZipPath    = "all_jobs_zip_path"
	ConfigAllZipSHA256  = "all_jobs_zip_sha256"
	ConfigAllZipBuiltAt = "all_jobs_zip_built_at"
)

// Settings is the mutable generation configuration. It is re-read from
// storage on every prompt iteration so edits apply to in-flight jobs.
type Settings struct {
	BasePrompt       string
	APIKey           string
	Model            string
	Provider         string
	DesignerTemplate string
}

// MaskAPIKey hides the middle of a key for display, keeping just enough of
// the ends to identify it.
func MaskAPIKey(key string) string {
	if len(key) < 8 {
		return "********"
	}
	return key[:4] + "********" + key[len(key)-4:]
}
