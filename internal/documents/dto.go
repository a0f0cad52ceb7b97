package documents

import "time"

// DocumentResponse is the outward-facing representation of a dossier document.
type DocumentResponse struct {
	DocumentID  string    `json:"documentId"`
	ProjectName string    `json:"projectName"`
	Region      string    `json:"region"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:  doc.ID,
		ProjectName: doc.ProjectName,
		Region:      doc.Region,
		Status:      doc.Status,
		CreatedAt:   doc.CreatedAt,
	}
}
