// Package discovery maintains a live view of OpenFan devices on the
// local network via mDNS service browsing.
//
// OpenFan devices advertise themselves as "_http._tcp" services with
// instance names beginning with "uOpenFan". The Engine browses for those
// advertisements in repeated bounded cycles, rebuilding the visible
// device set from scratch each cycle and publishing a full replacement
// snapshot to subscribers whenever the set changes.
//
// # Usage
//
//	engine := discovery.New(discovery.Options{})
//	updates, cancel := engine.Subscribe()
//	defer cancel()
//	if err := engine.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
//	for devices := range updates {
//	    for _, d := range devices {
//	        fmt.Println(d.Name, d.BaseURL)
//	    }
//	}
//
// # Network requirements
//
// Requires multicast support on the network interface and mDNS (UDP port
// 5353) allowed through the firewall; devices must be on the same local
// network segment.
package discovery
