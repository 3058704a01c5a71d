package domain

// Link is a hypermedia reference attached to API responses.
type Link struct {
	Rel    string `json:"rel"`
	Method string `json:"method"`
	Href   string `json:"href"`
}
