package workersai

import (
	"strconv"
	"strings"
)

// byteArray marshals as a JSON array of uint8, which is how the Workers AI
// REST API expects binary model inputs.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, len(b)*4+2)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

type inpaintRequest struct {
	Prompt   string    `json:"prompt"`
	Image    byteArray `json:"image"`
	Mask     byteArray `json:"mask"`
	NumSteps int       `json:"num_steps"`
}

type ApiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope is the standard Cloudflare v4 response wrapper.
type Envelope[T any] struct {
	Success  bool         `json:"success"`
	Errors   []ApiMessage `json:"errors"`
	Messages []ApiMessage `json:"messages"`
	Result   T            `json:"result"`
}

func (e Envelope[T]) errorText() string {
	parts := make([]string, 0, len(e.Errors))
	for _, m := range e.Errors {
		parts = append(parts, strconv.Itoa(m.Code)+": "+m.Message)
	}
	return strings.Join(parts, "; ")
}

// imageResult covers models that answer with JSON instead of raw bytes.
type imageResult struct {
	Image string `json:"image"`
}

type TokenStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
