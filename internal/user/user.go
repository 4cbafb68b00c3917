package user

// Roles a user can hold. Admin unlocks the back-office routes.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID       int    `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	// Wishlist holds product ids; it behaves as a set.
	Wishlist  []int  `json:"wishlist,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// IsAdmin reports whether the user may use admin-only routes.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
