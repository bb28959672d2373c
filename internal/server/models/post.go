package models

type Post struct {
	ID      int64
	Title   string
	Content string
	UserID  int64
}
