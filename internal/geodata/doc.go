// Package geodata resolves neighborhood coordinates from OpenStreetMap and
// classifies them into city areas. Lookups go through a rate-limited HTTP
// client and a file-backed cache so repeated runs do not re-fetch.
package geodata
