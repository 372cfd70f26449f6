// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver is a [Resolver] backed by static tables.
type fakeResolver struct {
	cnames map[string]string
	hosts  map[string][]netip.Addr
	ports  map[string]int

	// networks records the network of each LookupNetIP call.
	networks []string
}

var errFakeNotFound = errors.New("fake: not found")

func (r *fakeResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	if cname, found := r.cnames[host]; found {
		return cname, nil
	}
	return "", errFakeNotFound
}

func (r *fakeResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	r.networks = append(r.networks, network)
	if addrs, found := r.hosts[host]; found {
		return addrs, nil
	}
	return nil, errFakeNotFound
}

func (r *fakeResolver) LookupPort(ctx context.Context, network, service string) (int, error) {
	if port, found := r.ports[network+"/"+service]; found {
		return port, nil
	}
	return 0, errFakeNotFound
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		cnames: map[string]string{
			"www.example.com": "example.com.",
		},
		hosts: map[string][]netip.Addr{
			"www.example.com": {
				netip.MustParseAddr("93.184.215.14"),
				netip.MustParseAddr("2606:2800:21f:cb07:6820:80da:af6b:8b2c"),
				netip.MustParseAddr("::ffff:93.184.215.14"),
			},
			"v6only.example.com": {
				netip.MustParseAddr("2001:db8::1"),
			},
		},
		ports: map[string]int{
			"tcp/http":   80,
			"udp/domain": 53,
			"tcp/domain": 53,
		},
	}
}

// addressInfoOptions allows comparing [AddressInfo] values with cmp.
var addressInfoOptions = []cmp.Option{
	cmp.AllowUnexported(Mask[AddressInfoFlag]{}, Protocol{}),
	cmp.Comparer(func(a, b *Address) bool { return a.Equal(b) }),
}

func collectAddressInfo(list *AddressInfoList) []AddressInfo {
	var out []AddressInfo
	for _, info := range list.All() {
		out = append(out, info)
	}
	return out
}

func TestResolve(t *testing.T) {
	tcp, udp := ProtocolFromID(ipprotoTCP), ProtocolFromID(ipprotoUDP)

	cases := []struct {
		// name is the name of the test case.
		name string

		// hostname and service are the arguments of Resolve.
		hostname, service string

		// hints are the hints passed to Resolve.
		hints AddressInfo

		// expect contains the expected entries.
		expect []AddressInfo
	}{{
		name:     "IPv4 literal with numeric service and stream hint",
		hostname: "127.0.0.1",
		service:  "8080",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("127.0.0.1:8080"),
		}},
	}, {
		name:     "IPv6 literal with any socket type",
		hostname: "::1",
		service:  "53",
		hints:    NewHints(FamilyUnspec, TypeAny, RawProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet6,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("[::1]:53"),
		}, {
			Family:     FamilyInet6,
			SocketType: TypeDatagram,
			Protocol:   udp,
			Address:    MustParseAddress("[::1]:53"),
		}},
	}, {
		name:     "protocol hint filters the socket types",
		hostname: "10.0.0.1",
		service:  "53",
		hints:    NewHints(FamilyUnspec, TypeAny, UDPProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet,
			SocketType: TypeDatagram,
			Protocol:   udp,
			Address:    MustParseAddress("10.0.0.1:53"),
		}},
	}, {
		name:     "named service",
		hostname: "10.0.0.1",
		service:  "http",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("10.0.0.1:80"),
		}},
	}, {
		name:    "empty hostname means loopback",
		service: "80",
		hints:   NewHints(FamilyUnspec, TypeStream, RawProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet6,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("[::1]:80"),
		}, {
			Family:     FamilyInet,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("127.0.0.1:80"),
		}},
	}, {
		name:    "empty hostname with passive means wildcard",
		service: "80",
		hints:   NewHints(FamilyInet, TypeStream, RawProtocol(), AddressInfoPassive),
		expect: []AddressInfo{{
			Flags:      MaskOf(AddressInfoPassive),
			Family:     FamilyInet,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("0.0.0.0:80"),
		}},
	}, {
		name:     "hostname lookup with family filter and dedup",
		hostname: "www.example.com",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("93.184.215.14:80"),
		}},
	}, {
		name:     "canonical name on the first entry only",
		hostname: "www.example.com",
		service:  "80",
		hints:    NewHints(FamilyUnspec, TypeStream, RawProtocol(), AddressInfoCanonName),
		expect: []AddressInfo{{
			Flags:         MaskOf(AddressInfoCanonName),
			Family:        FamilyInet,
			SocketType:    TypeStream,
			Protocol:      tcp,
			CanonicalName: "example.com",
			Address:       MustParseAddress("93.184.215.14:80"),
		}, {
			Flags:      MaskOf(AddressInfoCanonName),
			Family:     FamilyInet6,
			SocketType: TypeStream,
			Protocol:   tcp,
			Address:    MustParseAddress("[2606:2800:21f:cb07:6820:80da:af6b:8b2c]:80"),
		}},
	}, {
		name:     "canonical name of a literal is the literal",
		hostname: "10.0.0.1",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol(), AddressInfoCanonName),
		expect: []AddressInfo{{
			Flags:         MaskOf(AddressInfoCanonName),
			Family:        FamilyInet,
			SocketType:    TypeStream,
			Protocol:      tcp,
			CanonicalName: "10.0.0.1",
			Address:       MustParseAddress("10.0.0.1:80"),
		}},
	}, {
		name:     "raw socket without service",
		hostname: "10.0.0.1",
		hints:    NewHints(FamilyInet, TypeRaw, ICMPProtocol()),
		expect: []AddressInfo{{
			Family:     FamilyInet,
			SocketType: TypeRaw,
			Protocol:   ICMPProtocol(),
			Address:    MustParseAddress("10.0.0.1:0"),
		}},
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Resolver = newFakeResolver()

			list, err := Resolve(context.Background(), cfg, tc.hostname, tc.service, tc.hints)
			require.NoError(t, err)
			require.Equal(t, len(tc.expect), list.Len())
			assert.True(t, list.First().Address.Equal(tc.expect[0].Address))

			if diff := cmp.Diff(tc.expect, collectAddressInfo(list), addressInfoOptions...); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestResolveLookupNetwork(t *testing.T) {
	cases := []struct {
		family AddressFamily
		expect string
	}{
		{FamilyUnspec, "ip"},
		{FamilyInet, "ip4"},
		{FamilyInet6, "ip6"},
	}

	for _, tc := range cases {
		t.Run(tc.family.String(), func(t *testing.T) {
			reso := newFakeResolver()
			cfg := NewConfig()
			cfg.Resolver = reso

			_, _ = Resolve(context.Background(), cfg, "v6only.example.com", "80", NewHints(tc.family, TypeStream, RawProtocol()))
			assert.Equal(t, []string{tc.expect}, reso.networks)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		// name is the name of the test case.
		name string

		// hostname and service are the arguments of Resolve.
		hostname, service string

		// hints are the hints passed to Resolve.
		hints AddressInfo

		// expect is the expected wrapped error.
		expect error
	}{{
		name:   "neither hostname nor service",
		hints:  NewHints(FamilyUnspec, TypeAny, RawProtocol()),
		expect: errNoHostOrService,
	}, {
		name:     "unsupported family",
		hostname: "127.0.0.1",
		hints:    NewHints(FamilyBluetooth, TypeStream, RawProtocol()),
		expect:   ErrAddressFamilyNotSupported,
	}, {
		name:     "unsupported socket type",
		hostname: "127.0.0.1",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeSeqPacket, RawProtocol()),
		expect:   errSocketTypeNotSupport,
	}, {
		name:     "raw socket with service",
		hostname: "127.0.0.1",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeRaw, RawProtocol()),
		expect:   errSocketTypeNotSupport,
	}, {
		name:     "protocol does not match socket type",
		hostname: "127.0.0.1",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, UDPProtocol()),
		expect:   errSocketTypeNotSupport,
	}, {
		name:     "numeric service required",
		hostname: "127.0.0.1",
		service:  "http",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol(), AddressInfoNumericServ),
		expect:   errServiceNotNumeric,
	}, {
		name:     "unknown service",
		hostname: "127.0.0.1",
		service:  "nonexistent",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect:   errFakeNotFound,
	}, {
		name:     "numeric host required",
		hostname: "www.example.com",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol(), AddressInfoNumericHost),
		expect:   errHostNotNumeric,
	}, {
		name:     "invalid hostname",
		hostname: "www..example.com",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect:   ErrInvalidArgument,
	}, {
		name:     "literal of the wrong family",
		hostname: "::1",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect:   errNoAddress,
	}, {
		name:     "no address of the wanted family",
		hostname: "v6only.example.com",
		service:  "80",
		hints:    NewHints(FamilyInet, TypeStream, RawProtocol()),
		expect:   errNoAddress,
	}, {
		name:     "unknown host",
		hostname: "nxdomain.example.com",
		service:  "80",
		hints:    NewHints(FamilyUnspec, TypeStream, RawProtocol()),
		expect:   errFakeNotFound,
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Resolver = newFakeResolver()

			list, err := Resolve(context.Background(), cfg, tc.hostname, tc.service, tc.hints)
			require.Error(t, err)
			assert.Nil(t, list)
			assert.ErrorIs(t, err, tc.expect)
			assert.ErrorIs(t, err, ErrResolution)

			var rerr *ResolveError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tc.hostname, rerr.Hostname)
			assert.Equal(t, tc.service, rerr.Service)
		})
	}
}

func TestResolveFirst(t *testing.T) {
	cfg := NewConfig()
	cfg.Resolver = newFakeResolver()

	info, err := ResolveFirst(context.Background(), cfg, "www.example.com", "domain", NewHints(FamilyUnspec, TypeDatagram, RawProtocol()))
	require.NoError(t, err)
	assert.Equal(t, TypeDatagram, info.SocketType)
	assert.Equal(t, "93.184.215.14:53", info.Address.String())

	_, err = ResolveFirst(context.Background(), cfg, "", "", AddressInfo{})
	require.ErrorIs(t, err, ErrResolution)
}
