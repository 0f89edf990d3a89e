package types

// DecodeOutput represents the complete JSON output for one decoded binary
type DecodeOutput struct {
	OK             bool             `json:"ok"`
	Input          string           `json:"input,omitempty"`
	Output         string           `json:"output,omitempty"`
	CiphertextSize int              `json:"ciphertext_size"`
	PlaintextSize  int              `json:"plaintext_size"`
	DecryptMillis  float64          `json:"decrypt_ms"`
	Digest         string           `json:"digest,omitempty"`
	Valid          bool             `json:"valid"`
	Magic          string           `json:"magic,omitempty"`
	Version        int32            `json:"version"`
	Deobfuscated   bool             `json:"deobfuscated"`
	Metadata       *MetadataSummary `json:"metadata,omitempty"`
	Warnings       []Warning        `json:"warnings"`
	Error          *ErrorInfo       `json:"error,omitempty"`
}

// MetadataSummary represents record counts and resolved names
type MetadataSummary struct {
	StringLiterals  int               `json:"string_literals"`
	Images          int               `json:"images"`
	Assemblies      int               `json:"assemblies"`
	TypeDefinitions int               `json:"type_definitions"`
	UsageLists      int               `json:"usage_lists"`
	UsagePairs      int               `json:"usage_pairs"`
	NamePoolBytes   int               `json:"name_pool_bytes"`
	ImageList       []ImageSummary    `json:"image_list,omitempty"`
	AssemblyList    []AssemblySummary `json:"assembly_list,omitempty"`
	Literals        []string          `json:"literals,omitempty"`
}

// ImageSummary represents one image definition
type ImageSummary struct {
	Name        string `json:"name"`
	TypeStart   int32  `json:"type_start"`
	TypeCount   uint32 `json:"type_count"`
	EntryPoint  int32  `json:"entry_point_index"`
	Token       string `json:"token"`
	NameMissing bool   `json:"name_missing,omitempty"`
}

// AssemblySummary represents one assembly definition
type AssemblySummary struct {
	Name           string `json:"name"`
	Culture        string `json:"culture,omitempty"`
	Version        string `json:"version"`
	PublicKeyToken string `json:"public_key_token"`
	ImageIndex     int32  `json:"image_index"`
	Token          string `json:"token"`
}

// Warning represents a non-fatal decode finding
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// ErrorInfo represents an error response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
