package main

// defaultPreludeSource and minimalPreludeSource are the two text blobs
// spec.md §6's standard-library interface describes as out of scope
// ("their contents are out of scope; the interface is: parse, lower,
// deduplicate against user-provided names, mark loaded functions with
// is_base_extension = true"). internal/prelude owns that interface;
// cmd/juliavm, as the external collaborator actually running a
// program, is where some concrete source text has to live. These are
// intentionally small — a real distribution would ship a much larger
// Base-equivalent blob, which is exactly the part the interface
// contract leaves unspecified.
const defaultPreludeSource = `
function square(x) return x * x end
function cube(x) return x * x * x end
function identity(x) return x end
function max2(a, b) if a > b return a else return b end end
function min2(a, b) if a < b return a else return b end end
`

const minimalPreludeSource = `
function identity(x) return x end
`
