package modules

import (
	"context"
	"io"
	"testing"

	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
)

type stubAPI struct{}

func (stubAPI) Upload(context.Context, string, string, io.Reader) (remote.UploadReceipt, error) {
	return remote.UploadReceipt{}, nil
}

func (stubAPI) ObtainToken(context.Context, string, string) (remote.TokenPair, error) {
	return remote.TokenPair{}, nil
}

func TestDefaultModuleSet(t *testing.T) {
	t.Parallel()

	mods := Default(module.Dependencies{})
	var ids []string
	for _, m := range mods {
		ids = append(ids, m.ID())
	}
	if len(ids) != 2 || ids[0] != "portal" || ids[1] != "dashboard" {
		t.Fatalf("module ids = %v, want [portal dashboard]", ids)
	}
	if Healthy(mods) {
		t.Fatal("Healthy() = true without collaborators")
	}
}

func TestDefaultModulesHealthyWhenWired(t *testing.T) {
	t.Parallel()

	store := session.NewStore(nil, nil)
	mods := Default(module.Dependencies{Session: store, API: stubAPI{}})
	if !Healthy(mods) {
		t.Fatal("Healthy() = false with collaborators")
	}
}
