package model

import "time"

// Post is a post document. Name and Avatar are a snapshot of the author at
// creation time. Likes and Comments are kept newest-first.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"date"`
}

// Like records that a user liked a post.
type Like struct {
	UserID string `json:"user"`
}

// Comment is a comment embedded in a post, with its own sub-id and author
// snapshot.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// LikedBy reports whether userID appears in the likes list.
func (p *Post) LikedBy(userID string) bool {
	return p.likeIndex(userID) >= 0
}

func (p *Post) likeIndex(userID string) int {
	for i, l := range p.Likes {
		if l.UserID == userID {
			return i
		}
	}
	return -1
}

// AddLike prepends a like for userID. It reports false, leaving the list
// untouched, when the user already liked the post.
func (p *Post) AddLike(userID string) bool {
	if p.LikedBy(userID) {
		return false
	}
	p.Likes = append([]Like{{UserID: userID}}, p.Likes...)
	return true
}

// RemoveLike drops userID's like. It reports false when there was none.
func (p *Post) RemoveLike(userID string) bool {
	i := p.likeIndex(userID)
	if i < 0 {
		return false
	}
	p.Likes = removeAt(p.Likes, i)
	return true
}

// FindComment returns the comment with the given sub-id, or nil.
func (p *Post) FindComment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment drops the comment with the given sub-id and reports whether
// one was removed.
func (p *Post) RemoveComment(id string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = removeAt(p.Comments, i)
			return true
		}
	}
	return false
}

// removeAt returns a copy of s without element i. The result is never nil,
// so an emptied list still serializes as [].
func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
