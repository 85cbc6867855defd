package service

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// GenerateLinkQR encodes a URL as a PNG image
	GenerateLinkQR(link string) ([]byte, error)
}
