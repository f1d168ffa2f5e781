package domain

import "fmt"

type BookRecord struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	NumPages        int     `json:"num_pages"`
	AvgRating       float64 `json:"avg_rating"`
	PublicationYear int     `json:"publication_year"`
	Description     string  `json:"description"`
	ImageURL        string  `json:"image_url"`
}

// Label is the text shown in the book selector.
func (b BookRecord) Label() string {
	return fmt.Sprintf("%s by %s", b.Title, b.Author)
}

type PageBounds struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}
