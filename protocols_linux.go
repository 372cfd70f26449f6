//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"bufio"
	"io"
	"maps"
	"os"
	"strconv"
	"strings"
	"sync"
)

// protocolsPath is the location of the system protocol database.
const protocolsPath = "/etc/protocols"

// protocolDatabase returns the protocol database, read once.
var protocolDatabase = sync.OnceValue(func() map[string]int {
	db := maps.Clone(wellKnownProtocols)
	if fp, err := os.Open(protocolsPath); err == nil {
		defer fp.Close()
		readProtocols(fp, db)
	}
	return db
})

// readProtocols parses the protocols(5) format into db.
//
// Each line reads "name number [aliases...]" with "#" starting a comment.
// Names and aliases are stored lower case.
func readProtocols(r io.Reader, db map[string]int) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil || id < 0 || id > 255 {
			continue
		}
		names := append([]string{fields[0]}, fields[2:]...)
		for _, name := range names {
			name = strings.ToLower(name)
			if _, found := db[name]; !found {
				db[name] = id
			}
		}
	}
}

// lookupProtocolDatabase implements [Platform.LookupProtocol] on Linux.
func lookupProtocolDatabase(name string) (int, bool) {
	id, found := protocolDatabase()[strings.ToLower(name)]
	return id, found
}
