package dto

type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

func (r UpdateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.FirstName != nil && len(*r.FirstName) < 2 {
		errors["first_name"] = "First name must be at least 2 characters long"
	}
	if r.LastName != nil && len(*r.LastName) < 2 {
		errors["last_name"] = "Last name must be at least 2 characters long"
	}

	return errors
}
