// Package discovery locates VELUX KLF 200 gateways with mDNS.
//
// The gateway advertises its web interface as an "_http._tcp" service
// whose instance and host names are VELUX_KLF_LAN_XXXX, where XXXX are the
// last four hex digits of its MAC address. The KLF API itself is served on
// TLS port 51200, which is the port reported in Device.Port.
//
// # Usage Example
//
//	devices, err := discovery.ScanForDevices(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Println(d.Serial, d.Address())
//	}
//
// # Network Requirements
//
// mDNS uses UDP multicast on port 5353. Discovery does not cross routed
// subnets and may be blocked by host firewalls; pass --host explicitly in
// that case.
package discovery
