package models

// UserSortFields — поля, по которым разрешена сортировка списка пользователей.
var UserSortFields = map[string]struct{}{
	"createdAt": {},
	"updatedAt": {},
	"lastLogin": {},
	"name":      {},
	"email":     {},
}

// UserListQuery параметры постраничного поиска пользователей.
type UserListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// Pagination сведения о странице результата.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// UserPage — страница пользователей.
type UserPage struct {
	Users      []*User    `json:"users"`
	Pagination Pagination `json:"pagination"`
}
