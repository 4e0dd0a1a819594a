// Package layout defines the declarative collage layouts used by the compositor.
//
// A Template is a named set of rectangular slots expressed in normalized
// coordinates, so the same layout can be rendered at any output aspect ratio
// and resolution. Each slot carries a corner radius and a stacking order.
//
// # Coordinate System
//
// Slot geometry is normalized to the output surface:
//   - (0,0) is the top-left corner, (1,1) the bottom-right corner
//   - X and W are fractions of the surface width
//   - Y and H are fractions of the surface height
//   - CornerRadius is a fraction of the surface width
//
// The same Rect type is reused for crop regions in source pixel space; the
// meaning is always fixed by the field or function that carries it.
//
// # Registry
//
// Templates are authored as static data in templates.toml, embedded in the
// binary and decoded once into an immutable Registry. Templates returned by
// the registry must not be modified.
//
// # Hero Rules
//
// A template may carry a HeroRule naming the slot that receives the most
// prominent image and the image category preferred for it. Templates without
// a rule use their first declared slot as the hero slot.
package layout
