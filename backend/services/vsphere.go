// ABOUTME: vSphere instance type provider backed by govmomi
// ABOUTME: Resolves VM template names to vCPU and memory for on-prem node pools

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/vim25/mo"
)

// VSphereCredentials holds vCenter connection info
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool
}

// TemplateHardware is the hardware section of a VM or template
type TemplateHardware struct {
	Name       string
	NumCPU     int32
	MemoryMB   int32
	IsTemplate bool
}

// templateSource is the slice of vCenter the provider needs
type templateSource interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	TemplateHardware(ctx context.Context, name string) (TemplateHardware, error)
}

// VSphereClient wraps govmomi client for template discovery.
// client and finder are published together once the datacenter resolves.
type VSphereClient struct {
	creds VSphereCredentials

	mu     sync.RWMutex
	client *govmomi.Client
	finder *find.Finder
}

// NewVSphereClient creates a new vSphere client
func NewVSphereClient(creds VSphereCredentials) *VSphereClient {
	return &VSphereClient{
		creds: creds,
	}
}

// Connect establishes connection to vCenter. On success any previous
// session is logged out; on failure the client keeps its previous state.
func (v *VSphereClient) Connect(ctx context.Context) error {
	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL '%s': %w", v.creds.Host, err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	client, err := govmomi.NewClient(ctx, u, v.creds.Insecure)
	if err != nil {
		return connectError(v.creds.Host, err)
	}

	finder, err := v.openDatacenter(ctx, client)
	if err != nil {
		if logoutErr := client.Logout(context.WithoutCancel(ctx)); logoutErr != nil {
			slog.Warn("vSphere logout after failed connect", "error", logoutErr)
		}
		return err
	}

	v.mu.Lock()
	previous := v.client
	v.client = client
	v.finder = finder
	v.mu.Unlock()

	if previous != nil {
		if err := previous.Logout(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("vSphere logout of replaced session", "error", err)
		}
	}

	slog.Info("vSphere connected successfully")
	slog.Debug("vSphere connection details", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// openDatacenter returns a finder scoped to the configured datacenter
func (v *VSphereClient) openDatacenter(ctx context.Context, client *govmomi.Client) (*find.Finder, error) {
	finder := find.NewFinder(client.Client, true)
	dc, err := finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("datacenter '%s' not found - verify the datacenter name", v.creds.Datacenter)
		}
		return nil, fmt.Errorf("error accessing datacenter '%s': %w", v.creds.Datacenter, err)
	}
	finder.SetDatacenter(dc)

	// The finder caches datacenter folders on first use; fill the cache
	// before concurrent lookups share it.
	if _, err := finder.DefaultFolder(ctx); err != nil {
		return nil, fmt.Errorf("error accessing datacenter '%s' folders: %w", v.creds.Datacenter, err)
	}
	return finder, nil
}

// connectError turns govmomi dial failures into operator-facing messages
func connectError(host string, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused to vCenter at %s - verify the host is reachable", host)
	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf("cannot resolve vCenter hostname '%s' - verify DNS", host)
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "Cannot complete login"):
		return fmt.Errorf("authentication failed - verify username and password")
	case strings.Contains(errStr, "context deadline exceeded") || strings.Contains(errStr, "timeout"):
		return fmt.Errorf("connection timeout to vCenter at %s - check network connectivity", host)
	case strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509"):
		return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", host)
	}
	return fmt.Errorf("failed to connect to vCenter at %s: %w", host, err)
}

// Disconnect closes the vCenter connection
func (v *VSphereClient) Disconnect(ctx context.Context) error {
	v.mu.Lock()
	client := v.client
	v.client = nil
	v.finder = nil
	v.mu.Unlock()

	if client != nil {
		return client.Logout(ctx)
	}
	return nil
}

// IsConnected returns true if client has an active connection
func (v *VSphereClient) IsConnected() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.client != nil && v.client.Valid()
}

func (v *VSphereClient) currentFinder() *find.Finder {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.finder
}

// TemplateHardware reads the configured vCPU and memory of a VM or template.
// name may be a bare name or an inventory path.
func (v *VSphereClient) TemplateHardware(ctx context.Context, name string) (TemplateHardware, error) {
	finder := v.currentFinder()
	if finder == nil {
		return TemplateHardware{}, fmt.Errorf("vSphere client not connected")
	}

	vm, err := finder.VirtualMachine(ctx, name)
	if err != nil {
		var notFound *find.NotFoundError
		if errors.As(err, &notFound) {
			return TemplateHardware{}, fmt.Errorf("%w: %s", models.ErrUnknownInstanceType, name)
		}
		return TemplateHardware{}, fmt.Errorf("finding template %s: %w", name, err)
	}

	var vmMo mo.VirtualMachine
	if err := vm.Properties(ctx, vm.Reference(), []string{"config"}, &vmMo); err != nil {
		return TemplateHardware{}, fmt.Errorf("getting template properties: %w", err)
	}
	if vmMo.Config == nil {
		return TemplateHardware{}, fmt.Errorf("template %s has no configuration", name)
	}

	return TemplateHardware{
		Name:       vm.Name(),
		NumCPU:     vmMo.Config.Hardware.NumCPU,
		MemoryMB:   vmMo.Config.Hardware.MemoryMB,
		IsTemplate: vmMo.Config.Template,
	}, nil
}

// VSphereProvider resolves instance type names against vCenter templates.
// The connection is opened on first use.
type VSphereProvider struct {
	source templateSource
	mu     sync.Mutex
}

// NewVSphereProvider creates a provider over a vCenter client
func NewVSphereProvider(client *VSphereClient) *VSphereProvider {
	return &VSphereProvider{source: client}
}

func (p *VSphereProvider) Name() string {
	return models.SourceVSphere
}

// GetInstanceType implements InstanceTypeProvider
func (p *VSphereProvider) GetInstanceType(ctx context.Context, name string) (models.InstanceType, error) {
	if err := p.ensureConnected(ctx); err != nil {
		return models.InstanceType{}, err
	}

	hw, err := p.source.TemplateHardware(ctx, name)
	if err != nil {
		return models.InstanceType{}, err
	}
	if !hw.IsTemplate {
		slog.Debug("vSphere instance type resolved from a VM, not a template", "name", name)
	}

	return models.InstanceType{
		Name:      name,
		VCPUCount: int(hw.NumCPU),
		MemoryMB:  int(hw.MemoryMB),
		Source:    models.SourceVSphere,
	}, nil
}

func (p *VSphereProvider) ensureConnected(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source.IsConnected() {
		return nil
	}
	if err := p.source.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to vSphere: %w", err)
	}
	return nil
}
