package users

type SaveUserRequest struct {
	Name     string `json:"name" validate:"max=255"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=verified banned"`
}

// SaveUserResult mirrors the insert-or-ignore semantics of the login hook.
type SaveUserResult struct {
	Message    string  `json:"message,omitempty"`
	InsertedID *string `json:"insertedId"`
	User       *User   `json:"user"`
}
