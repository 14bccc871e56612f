// Command debug_polygon decodes an encoded region polygon and optionally
// tests whether a point lies inside it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/NERVsystems/tripgomcp/pkg/geo"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: debug_polygon <encoded_polygon> [lat lng]")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 && len(args) != 3 {
		flag.Usage()
		os.Exit(1)
	}

	points, err := geo.DecodePolygon(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}
	for i, pt := range points {
		fmt.Printf("Decoded Point %d: Latitude: %.5f, Longitude: %.5f\n", i, pt.Lat, pt.Lng)
	}
	closed := geo.Close(points)
	fmt.Printf("\n%d vertices (%d after closing)\n", len(points), len(closed))

	if len(args) == 3 {
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid latitude %q\n", args[1])
			os.Exit(1)
		}
		lng, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid longitude %q\n", args[2])
			os.Exit(1)
		}
		point := geo.Coordinate{Lat: lat, Lng: lng}
		fmt.Printf("Point %s inside: %t\n", point, geo.Contains(point, points))
	}

	// Round trip so encoding problems are visible next to the decoded output.
	fmt.Printf("Re-encoded: %s\n", geo.EncodePolygon(points))
}
