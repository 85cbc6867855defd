package impl

import (
	"slices"

	"attribution/internal/domain/entity"
)

// AttachmentPolicy returns the document types a recipient class receives for a trigger.
// The result depends only on its arguments.
func AttachmentPolicy(trigger entity.Trigger, class entity.RecipientClass) []entity.DocumentType {
	switch class {
	case entity.RecipientClassCustomer:
		switch trigger {
		case entity.TriggerBookingConfirmed:
			return []entity.DocumentType{
				entity.DocumentTypeBookingConfirmation,
				entity.DocumentTypeServiceSummary,
				entity.DocumentTypeTermsAndConditions,
			}
		case entity.TriggerPaymentCompleted:
			return []entity.DocumentType{entity.DocumentTypeInvoice}
		case entity.TriggerBookingCancelled:
			return []entity.DocumentType{entity.DocumentTypeCancellationNotice}
		}
	case entity.RecipientClassStaff:
		switch trigger {
		case entity.TriggerBookingConfirmed:
			return []entity.DocumentType{
				entity.DocumentTypeBookingConfirmation,
				entity.DocumentTypeServiceSummary,
			}
		case entity.TriggerPaymentCompleted:
			return []entity.DocumentType{entity.DocumentTypeInvoice}
		case entity.TriggerBookingCancelled:
			return []entity.DocumentType{entity.DocumentTypeCancellationNotice}
		case entity.TriggerProfessionalAssigned:
			return []entity.DocumentType{entity.DocumentTypeServiceSummary}
		}
	case entity.RecipientClassProfessional:
		if trigger == entity.TriggerAttributionBroadcast {
			return []entity.DocumentType{
				entity.DocumentTypeMissionBrief,
				entity.DocumentTypeResponseQRCode,
			}
		}
	}

	return nil
}

// SelectDocuments keeps the documents whose type is listed, in the order of types.
func SelectDocuments(docs []entity.Document, types []entity.DocumentType) []entity.Document {
	if len(types) == 0 || len(docs) == 0 {
		return nil
	}

	selected := make([]entity.Document, 0, len(types))
	for _, docType := range types {
		for _, doc := range docs {
			if doc.Type == docType {
				selected = append(selected, doc)
			}
		}
	}

	return selected
}

// BoundAttachments keeps documents in order while their total size stays within maxBytes.
// A document that does not fit is dropped and later, smaller ones may still be kept.
func BoundAttachments(docs []entity.Document, maxBytes int64) (kept, dropped []entity.Document) {
	if maxBytes <= 0 {
		return slices.Clone(docs), nil
	}

	var total int64
	for _, doc := range docs {
		if total+doc.Size() > maxBytes {
			dropped = append(dropped, doc)
			continue
		}
		total += doc.Size()
		kept = append(kept, doc)
	}

	return kept, dropped
}

