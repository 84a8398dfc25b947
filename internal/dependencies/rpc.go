package dependencies

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"inpaint/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Rpc runs inpainting on a self-hosted diffusion worker over gRPC. The worker
// takes a google.protobuf.Struct and answers with a google.protobuf.BytesValue.
type Rpc struct {
	conn    *grpc.ClientConn
	method  string
	timeout time.Duration
}

func NewRpc(cfg config.InferenceConfig) (*Rpc, error) {
	conn, err := grpc.NewClient(
		fmt.Sprint(cfg.Rpc.Peer, ":", cfg.Rpc.Port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating newrpc: %w", err)
	}

	return newRpcWithConn(conn, cfg.Rpc.Method, cfg.Timeout()), nil
}

func newRpcWithConn(conn *grpc.ClientConn, method string, timeout time.Duration) *Rpc {
	return &Rpc{
		conn:    conn,
		method:  method,
		timeout: timeout,
	}
}

func (r *Rpc) Run(ctx context.Context, modelID string, in Input) (*Output, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := structpb.NewStruct(map[string]any{
		"model":              modelID,
		"prompt":             in.Prompt,
		"image":              base64.StdEncoding.EncodeToString(in.Image.Body),
		"image_content_type": in.Image.ContentType,
		"mask":               base64.StdEncoding.EncodeToString(in.Mask.Body),
		"mask_content_type":  in.Mask.ContentType,
		"num_steps":          in.NumSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}

	resp := new(wrapperspb.BytesValue)
	if err := r.conn.Invoke(ctx, r.method, req, resp); err != nil {
		return nil, fmt.Errorf("rpc %s: %w", r.method, err)
	}
	if len(resp.GetValue()) == 0 {
		return nil, errors.New("rpc returned an empty image")
	}

	return &Output{Image: io.NopCloser(bytes.NewReader(resp.GetValue()))}, nil
}

func (r *Rpc) Close() {
	r.conn.Close()
}
