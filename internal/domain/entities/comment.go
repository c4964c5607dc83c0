package entities

import "time"

// AccessionComment is a note recorded against an accession
type AccessionComment struct {
	ID          string    `json:"id"`
	AccessionID string    `json:"accessionId"`
	Comment     string    `json:"comment"`
	CreatedBy   string    `json:"createdBy"`
	CreatedDate time.Time `json:"createdDate"`
	OriginalID  *string   `json:"originalCommentId,omitempty"`
}

// AccessionCommentForCreation is the payload for adding a comment
type AccessionCommentForCreation struct {
	Comment string `json:"comment"`
}

// AccessionAttachment is a file attached to an accession. Upload itself is
// handled by the LIMS backend.
type AccessionAttachment struct {
	ID          string    `json:"id"`
	AccessionID string    `json:"accessionId"`
	Type        string    `json:"type"`
	Filename    string    `json:"filename"`
	Comments    string    `json:"comments,omitempty"`
	CreatedDate time.Time `json:"createdDate"`
}
