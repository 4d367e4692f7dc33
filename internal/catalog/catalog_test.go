package catalog

import (
	"sync"
	"testing"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

func testServices() []*domain.Service {
	return []*domain.Service{
		{
			ID: domain.ID("sqs"), Protocol: domain.ProtocolJSON, SigningName: "sqs",
			TargetPrefix: "AmazonSQS", EndpointPrefix: "sqs",
			OperationNames: []string{"SendMessage", "ListQueues", "SendMessage"},
		},
		{
			ID: domain.ID("sqs", domain.ProtocolQuery), Protocol: domain.ProtocolQuery, SigningName: "sqs",
			EndpointPrefix: "sqs", OperationNames: []string{"SendMessage"},
		},
		{
			ID: domain.ID("sagemaker-runtime"), Protocol: domain.ProtocolRESTJSON, SigningName: "sagemaker",
			EndpointPrefix: "runtime.sagemaker", OperationNames: []string{"InvokeEndpoint"},
		},
		{
			ID: domain.ID("sagemaker"), Protocol: domain.ProtocolJSON, SigningName: "sagemaker",
			TargetPrefix: "SageMaker", EndpointPrefix: "api.sagemaker", OperationNames: []string{"ListModels"},
		},
		{ID: domain.ID("runtime"), Protocol: domain.ProtocolRESTJSON, EndpointPrefix: "runtime"},
	}
}

func TestNewEmpty(t *testing.T) {
	c := Empty()
	if c == nil {
		t.Fatal("Empty() returned nil")
	}
	if c.Count() != 0 {
		t.Errorf("Empty() should start without services, got %v", c.Count())
	}
	if len(c.BySigningName("sqs")) != 0 {
		t.Errorf("BySigningName() on empty catalog = %v, want none", c.BySigningName("sqs"))
	}
}

func TestNewSkipsInvalid(t *testing.T) {
	c := New([]*domain.Service{nil, {Protocol: domain.ProtocolJSON}, {ID: domain.ID("s3"), Protocol: domain.ProtocolRESTXML}})
	if c.Count() != 1 {
		t.Errorf("New() kept %v services, want 1", c.Count())
	}
}

func TestNewCopiesInput(t *testing.T) {
	services := testServices()
	c := New(services)

	services[0].SigningName = "changed"
	svc, ok := c.Get("sqs", "")
	if !ok {
		t.Fatal("Get(sqs) not found")
	}
	if svc.SigningName != "sqs" {
		t.Errorf("catalog was modified through its input: SigningName = %v", svc.SigningName)
	}
	if len(svc.OperationNames) != 2 || svc.OperationNames[0] != "ListQueues" {
		t.Errorf("OperationNames = %v, want sorted and de-duplicated", svc.OperationNames)
	}
}

func TestIndexes(t *testing.T) {
	c := New(testServices())

	got := c.BySigningName("sqs")
	want := []domain.ServiceIdentifier{domain.ID("sqs"), domain.ID("sqs", domain.ProtocolQuery)}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("BySigningName(sqs) = %v, want %v", got, want)
	}

	if got := c.ByTargetPrefix("AmazonSQS"); len(got) != 1 || got[0] != domain.ID("sqs") {
		t.Errorf("ByTargetPrefix(AmazonSQS) = %v", got)
	}

	if got := c.ByOperation("SendMessage"); len(got) != 2 {
		t.Errorf("ByOperation(SendMessage) = %v, want 2 variants", got)
	}
	got = c.ByOperation("SendMessage", domain.ProtocolQuery, domain.ProtocolEC2)
	if len(got) != 1 || got[0] != domain.ID("sqs", domain.ProtocolQuery) {
		t.Errorf("ByOperation(SendMessage, query) = %v", got)
	}
}

func TestIndexesAreCopies(t *testing.T) {
	c := New(testServices())
	got := c.BySigningName("sqs")
	got[0] = domain.ID("mutated")

	if c.BySigningName("sqs")[0] != domain.ID("sqs") {
		t.Error("BySigningName() leaked its internal slice")
	}
}

func TestGet(t *testing.T) {
	c := New([]*domain.Service{
		{ID: domain.ID("sqs", domain.ProtocolQuery), Protocol: domain.ProtocolQuery},
		{ID: domain.ID("sqs", domain.ProtocolJSON), Protocol: domain.ProtocolJSON},
		{ID: domain.ID("s3"), Protocol: domain.ProtocolRESTXML},
	})

	tests := []struct {
		name, protocol string
		wantProtocol   string
		wantOK         bool
	}{
		{"sqs", "", domain.ProtocolJSON, true}, // preferred protocol without primary
		{"sqs", domain.ProtocolQuery, domain.ProtocolQuery, true},
		{"s3", domain.ProtocolRESTXML, domain.ProtocolRESTXML, true}, // primary speaks it
		{"s3", domain.ProtocolJSON, "", false},
		{"missing", "", "", false},
	}

	for _, tt := range tests {
		svc, ok := c.Get(tt.name, tt.protocol)
		if ok != tt.wantOK {
			t.Errorf("Get(%q, %q) ok = %v, want %v", tt.name, tt.protocol, ok, tt.wantOK)
			continue
		}
		if ok && svc.Protocol != tt.wantProtocol {
			t.Errorf("Get(%q, %q) protocol = %v, want %v", tt.name, tt.protocol, svc.Protocol, tt.wantProtocol)
		}
	}

	if _, ok := c.Lookup(domain.ID("sqs", domain.ProtocolQuery)); !ok {
		t.Error("Lookup(sqs#query) not found")
	}
}

func TestEndpointPrefixesLongestFirst(t *testing.T) {
	c := New(testServices())
	prefixes := c.EndpointPrefixes()

	want := []string{"runtime.sagemaker", "api.sagemaker", "runtime", "sqs"}
	if len(prefixes) != len(want) {
		t.Fatalf("EndpointPrefixes() = %v entries, want %v", len(prefixes), len(want))
	}
	for i, p := range prefixes {
		if p.Prefix != want[i] {
			t.Errorf("EndpointPrefixes()[%d] = %v, want %v", i, p.Prefix, want[i])
		}
	}
	if len(prefixes[3].Services) != 2 {
		t.Errorf("sqs prefix services = %v, want 2", prefixes[3].Services)
	}
}

func TestServicesSorted(t *testing.T) {
	services := New(testServices()).Services()
	for i := 1; i < len(services); i++ {
		if domain.CompareIdentifiers(services[i-1].ID, services[i].ID) >= 0 {
			t.Errorf("Services() not sorted at %d: %v before %v", i, services[i-1].ID, services[i].ID)
		}
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder(nil)
	if h.Load() == nil || h.Load().Count() != 0 {
		t.Fatal("NewHolder(nil) should hold an empty catalog")
	}

	next := New(testServices())
	prev := h.Store(next)
	if prev.Count() != 0 {
		t.Errorf("Store() returned previous catalog with %v services, want 0", prev.Count())
	}
	if h.Load() != next {
		t.Error("Load() did not return the stored catalog")
	}
	if h.Swaps() != 1 {
		t.Errorf("Swaps() = %v, want 1", h.Swaps())
	}

	h.Store(nil)
	if h.Load() == nil {
		t.Error("Store(nil) should publish an empty catalog")
	}
}

func TestHolderConcurrentAccess(t *testing.T) {
	h := NewHolder(New(testServices()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = h.Load().BySigningName("sqs")
		}()
		go func() {
			defer wg.Done()
			h.Store(New(testServices()))
		}()
	}
	wg.Wait()

	if h.Swaps() != 10 {
		t.Errorf("Swaps() = %v, want 10", h.Swaps())
	}
}
