package roblox

// WallPage is one page of group wall posts. A nil NextPageCursor means the
// wall has been read to the end.
type WallPage struct {
	PreviousPageCursor *string    `json:"previousPageCursor"`
	NextPageCursor     *string    `json:"nextPageCursor"`
	Data               []WallPost `json:"data"`
}

// WallPost is a single post as returned by the wall endpoint. Poster is nil
// on some posts from very old walls.
type WallPost struct {
	ID      int64   `json:"id"`
	Poster  *Poster `json:"poster"`
	Body    string  `json:"body"`
	Created string  `json:"created"`
}

type Poster struct {
	User *PosterUser `json:"user"`
	Role *PosterRole `json:"role"`
}

type PosterUser struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type PosterRole struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rank int64  `json:"rank"`
}

// UserGroups is the membership listing returned by the per-user roles
// endpoint, used for rank lookups.
type UserGroups struct {
	Data []GroupMembership `json:"data"`
}

type GroupMembership struct {
	Group struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"group"`
	Role struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Rank int64  `json:"rank"`
	} `json:"role"`
}
