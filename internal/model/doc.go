// Package model provides the storefront data types shared by every other
// internal package.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Money is decimal.Decimal, never float64
//   - Product values are immutable once loaded from the catalog
//   - CartLine quantity is always >= 1 inside a committed Cart
//   - Order.Items is a deep copy, never an alias of the live Cart
//   - JSON tags use camelCase so persisted fragments keep the storefront's
//     original structural shape (inStock, userId, orderDate, zipCode)
package model
