package extract

// Source names the request part an extractor reads.
type Source string

const (
	SourceJSON   Source = "json"
	SourceQuery  Source = "query"
	SourcePath   Source = "path"
	SourceForm   Source = "form"
	SourceHeader Source = "header"
	SourceClaims Source = "claims"
)

func (s Source) String() string {
	return string(s)
}

// Reason classifies why extraction failed.
type Reason string

const (
	ReasonContentType     Reason = "content_type"
	ReasonPayloadTooLarge Reason = "payload_too_large"
	ReasonDeserialize     Reason = "deserialize"
	ReasonValidate        Reason = "validate"
	ReasonInternal        Reason = "internal"
)

func (r Reason) String() string {
	return string(r)
}
