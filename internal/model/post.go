package model

// BlogPost is a single post written by a user.  Posts are grouped per
// user id and the order in which they were loaded is the display order.
type BlogPost struct {
	ID      int    `json:"id" yaml:"id" validate:"gt=0"`
	Title   string `json:"title" yaml:"title" validate:"required"`
	Content string `json:"content" yaml:"content"`
}

// UserPosts is one page of a user's posts.  No total or cursor is
// returned; clients advance offset themselves.
type UserPosts struct {
	UserID int        `json:"user_id"`
	Posts  []BlogPost `json:"posts"`
}
