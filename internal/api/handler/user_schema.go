package handler

type registerRequest struct {
	Username  string   `json:"username"  validate:"required,min=3,max=50"`
	Email     string   `json:"email"     validate:"required,email"`
	Password  string   `json:"password"  validate:"required,maxbytes=72"`
	Latitude  *float64 `json:"latitude"  validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Role      string   `json:"role"`
}

type errorResponse struct {
	Error string `json:"error"`
}
