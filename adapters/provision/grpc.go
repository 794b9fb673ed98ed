//go:generate protoc --proto_path=../../proto --go_out=./provisionpb --go_opt=paths=source_relative --go-grpc_out=./provisionpb --go-grpc_opt=paths=source_relative provision.proto

package provision

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"uoauth/adapters/provision/provisionpb"
)

// GRPCProvisioner 呼叫 bot 的 ProvisionService.Provision
type GRPCProvisioner struct {
	client provisionpb.ProvisionServiceClient
	// 由 NewGRPCProvisioner 建立的連線需要在 Close 時關閉
	closer interface{ Close() error }
}

// NewGRPCProvisioner 建立到 bot 的連線，target 例如 localhost:50051
func NewGRPCProvisioner(target string, opts ...grpc.DialOption) (*GRPCProvisioner, error) {
	const op = "provision.NewGRPCProvisioner"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create grpc client, err=%w", op, err)
	}
	return &GRPCProvisioner{client: provisionpb.NewProvisionServiceClient(conn), closer: conn}, nil
}

// NewGRPCProvisionerWithConn 使用既有的連線，連線由呼叫端負責關閉
func NewGRPCProvisionerWithConn(conn grpc.ClientConnInterface) *GRPCProvisioner {
	return &GRPCProvisioner{client: provisionpb.NewProvisionServiceClient(conn)}
}

func (p *GRPCProvisioner) Provision(ctx context.Context, req Request) error {
	const op = "provision.GRPCProvisioner.Provision"

	out, err := p.client.Provision(ctx, &provisionpb.RoleDiff{Id: req.ID, Assign: req.Assign, Revoke: req.Revoke})
	if err != nil {
		return fmt.Errorf("[%s] Fail to call provision, id=%s, err=%w", op, req.ID, err)
	}
	if !out.GetSuccess() {
		return fmt.Errorf("[%s] id=%s, err=%w", op, req.ID, ErrRejected)
	}
	return nil
}

func (p *GRPCProvisioner) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
