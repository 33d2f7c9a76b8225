package utilcss

import (
	"sort"
	"strings"
)

// findShortcutCycle runs a DFS over static shortcuts, following items that
// name another static shortcut, and returns the first cycle found.
func findShortcutCycle(static map[string]*ResolvedShortcut) []string {
	keys := make([]string, 0, len(static))
	for k := range static {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	visiting := map[string]bool{}
	visited := map[string]bool{}
	var stack []string

	var visit func(key string) []string
	visit = func(key string) []string {
		if visiting[key] {
			for i, k := range stack {
				if k == key {
					cycle := append([]string{}, stack[i:]...)
					return append(cycle, key)
				}
			}
			return []string{key, key}
		}
		if visited[key] {
			return nil
		}
		visiting[key] = true
		stack = append(stack, key)
		for _, item := range static[key].Items {
			if _, ok := static[item.Token]; !ok {
				continue
			}
			if cycle := visit(item.Token); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		visiting[key] = false
		visited[key] = true
		return nil
	}

	for _, k := range keys {
		if cycle := visit(k); cycle != nil {
			return cycle
		}
	}
	return nil
}

func formatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}
