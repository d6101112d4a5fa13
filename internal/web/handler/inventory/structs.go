package inventory

// AddInput is the validated payload for adding or updating an item.
type AddInput struct {
	Name  string `form:"name"  json:"name"  validate:"required,max=100"`
	Count int    `form:"count" json:"count" validate:"gte=0"`
}

// DeleteInput is the validated payload for removing an item.
type DeleteInput struct {
	Name string `form:"name" json:"name" validate:"required,max=100"`
}
