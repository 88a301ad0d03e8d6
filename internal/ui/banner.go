package ui

import "strings"

// Banner returns the ASCII-art rxtk banner.
func Banner() string {
	banner := strings.Join([]string{
		`   ____  __  __  _____  _  __`,
		`  |  _ \ \ \/ / |_   _|| |/ /`,
		`  | |_) | >  <    | |  | ' / `,
		`  |_| \_\/_/\_\   |_|  |_|\_\`,
	}, "\n")

	return banner
}
