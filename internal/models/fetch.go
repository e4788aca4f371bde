package models

// PayloadType is the declared shape of a fetched payload.
type PayloadType int

const (
	TypeUnknown PayloadType = iota
	TypeHTML
	TypePDF
	TypeDOCX
)

func (t PayloadType) String() string {
	switch t {
	case TypeHTML:
		return "html"
	case TypePDF:
		return "pdf"
	case TypeDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// FetchMethod records which strategy produced the payload.
type FetchMethod int

const (
	MethodStatic FetchMethod = iota
	MethodRendered
)

func (m FetchMethod) String() string {
	if m == MethodRendered {
		return "rendered"
	}
	return "static"
}

// FetchResult is the transient output of one fetch attempt. It is owned by
// the task that produced it and discarded once extraction runs.
type FetchResult struct {
	URL          string
	Payload      []byte
	DeclaredType PayloadType
	Method       FetchMethod
}

// Document is the extracted plain text for one source URL.
// On failure Text holds a sentinel string, never an empty string with Success set.
type Document struct {
	SourceURL string
	Text      string
	Method    FetchMethod
	Success   bool
}
