// Package repository defines persistence for admission reports. The
// validation engine is stateless; this layer exists so operators can audit
// past admit/reject decisions per node.
package repository
