package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// defaultSectors sectores habituales de un tenant de restaurante o salón.
var defaultSectors = []string{"Kitchen", "Bar", "Salon Stock"}

// readSectorNames lee un nombre de sector por línea. Ignora líneas vacías y comentarios (#)
// y descarta duplicados sin distinguir mayúsculas. Las exportaciones de los POS antiguos
// vienen en ISO-8859-1.
func readSectorNames(r io.Reader, charset string) ([]string, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("charset no soportado %q", charset)
	}

	var names []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("leer sectores: %w", err)
	}
	return names, nil
}

// mergeNames une listas conservando el primer orden de aparición.
func mergeNames(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, n := range l {
			n = strings.TrimSpace(n)
			key := strings.ToLower(n)
			if n == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, n)
		}
	}
	return out
}
