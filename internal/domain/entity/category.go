package entity

// Category is maintained outside this service; users only reference it.
type Category struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}
