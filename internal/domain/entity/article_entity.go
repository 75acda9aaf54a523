package entity

import "time"

// Article is a piece of content owned by an author.
// A nil PublishedAt means the article is still a draft.
type Article struct {
	ID          int64
	Title       string
	Content     string
	AuthorID    int64
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author *User
	Tags   []Tag
}

func (a *Article) IsPublished() bool { return a.PublishedAt != nil }

// TagIDs returns the ids of the attached tags in order
func (a *Article) TagIDs() []int64 {
	ids := make([]int64, 0, len(a.Tags))
	for _, t := range a.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
