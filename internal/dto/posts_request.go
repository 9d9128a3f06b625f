package dto

// PostRequest carries the editable fields of a post. Missing fields bind as
// empty strings.
type PostRequest struct {
	Author  string `json:"author" form:"author"`
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// UpdatePostRequest requires every field to be present, though any of them
// may be empty.
type UpdatePostRequest struct {
	Author  *string `json:"author" form:"author" binding:"required"`
	Title   *string `json:"title" form:"title" binding:"required"`
	Content *string `json:"content" form:"content" binding:"required"`
}

func (r UpdatePostRequest) Fields() PostRequest {
	var fields PostRequest
	if r.Author != nil {
		fields.Author = *r.Author
	}
	if r.Title != nil {
		fields.Title = *r.Title
	}
	if r.Content != nil {
		fields.Content = *r.Content
	}
	return fields
}
