package entity

// DocumentType classifies a generated document.
type DocumentType string

const (
	DocumentTypeInvoice             DocumentType = "INVOICE"
	DocumentTypeBookingConfirmation DocumentType = "BOOKING_CONFIRMATION"
	DocumentTypeServiceSummary      DocumentType = "SERVICE_SUMMARY"
	DocumentTypeTermsAndConditions  DocumentType = "TERMS_AND_CONDITIONS"
	DocumentTypeCancellationNotice  DocumentType = "CANCELLATION_NOTICE"
	DocumentTypeMissionBrief        DocumentType = "MISSION_BRIEF"   // Redacted brief for professionals.
	DocumentTypeResponseQRCode      DocumentType = "RESPONSE_QRCODE" // Accept link as an image.
)

// Document is a generated file, held in memory only for the duration of a dispatch.
type Document struct {
	Type        DocumentType `json:"type"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Content     []byte       `json:"-"`
}

// Size returns the content length in bytes.
func (d Document) Size() int64 {
	return int64(len(d.Content))
}

// Attachment returns the metadata persisted on the notification row.
func (d Document) Attachment() Attachment {
	return Attachment{
		Type:        d.Type,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		SizeBytes:   d.Size(),
	}
}

// Attachment is the persisted description of a document sent with a notification.
type Attachment struct {
	Type        DocumentType `json:"type"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	Checksum    string       `json:"checksum,omitempty"` // SHA256 of the content sent.
}
