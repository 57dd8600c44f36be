// Package discovery finds devices on the local network.
//
// Boxes announce their web interface over mDNS. The browser watches
// those announcements, filters for the vendor's instance names and
// reports candidate addresses for building a client, aggregating
// announcements that arrive over several interfaces.
package discovery
