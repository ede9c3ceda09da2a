package model

// Lead is a captured prospect. It is immutable once created and owned by
// whichever sink received it.
type Lead struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	CompanyName  string `json:"company_name"`
	Sector       string `json:"sector"`
	Department   string `json:"department"`
	Challenge    string `json:"challenge"`
	Syllabus     string `json:"syllabus"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// ListLeadsResponse is the response for listing captured leads.
type ListLeadsResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}
