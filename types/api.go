package types

// InpaintRequest fields are pointers so a missing key can be told apart from
// an empty string.
type InpaintRequest struct {
	Image  *string `json:"image"`
	Mask   *string `json:"mask"`
	Prompt *string `json:"prompt"`
}

type InpaintResponse struct {
	OutputImage string `json:"output_image"`
}

type HealthResponse struct {
	Status    int   `json:"status"`
	TimeStamp int64 `json:"timestamp"`
}
