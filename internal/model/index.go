package model

// NumberRange is the response of the range filter.
type NumberRange struct {
	Numbers []int `json:"numbers"`
}

// Index is returned by the root endpoint and points clients at the docs.
type Index struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Redoc   string `json:"redoc"`
}
