package simulation

import "github.com/shopspring/decimal"

// SeedSupplier proveedor inicial y la categoría que abastece.
type SeedSupplier struct {
	Name     string
	Category string
}

// SeedProduct producto inicial del catálogo.
type SeedProduct struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
}

// Catálogo inicial de la semana.
var (
	SeedSuppliers = []SeedSupplier{
		{"Frutas Panamá", "Fruta"},
		{"Verduras Selectas", "Verdura"},
		{"Menestras del Valle", "Menestra"},
		{"Cerealistas S.A.", "Cereal"},
		{"Carnes Premium", "Carne"},
		{"Lácteos Panamá", "Lacteo"},
	}

	SeedClients = []string{"Juan Pérez", "Ana Gómez", "Carlos Ruiz", "Lucía Torres"}

	PaymentTypes = []string{"efectivo", "tarjeta", "crédito"}

	SeedProducts = []SeedProduct{
		seed("Mango", "Dulce", "Fruta", "1.2", 30),
		seed("Piña", "Tropical", "Fruta", "1.5", 25),
		seed("Guayaba", "Aromática", "Fruta", "1.3", 20),
		seed("Maracuyá", "Ácida", "Fruta", "1.4", 15),
		seed("Naranja", "Jugosa", "Fruta", "1.1", 40),
		seed("Plátano", "Verde", "Fruta", "1.0", 35),
		seed("Sandía", "Grande", "Fruta", "2.0", 10),
		seed("Fresa", "Roja", "Fruta", "2.2", 12),
		seed("Manzana", "Roja", "Fruta", "1.5", 50),
		seed("Pera", "Verde", "Fruta", "2.0", 30),
		seed("Melón", "Grande", "Fruta", "3.0", 20),
		seed("Banano", "Amarillo", "Fruta", "1.0", 40),
		seed("Uva", "Pequeña", "Fruta", "2.5", 18),
		seed("Durazno", "Suave", "Fruta", "2.8", 22),
		seed("Lechuga", "Fresca", "Verdura", "0.8", 25),
		seed("Tomate", "Maduro", "Verdura", "0.9", 30),
		seed("Zanahoria", "Orgánica", "Verdura", "1.1", 20),
		seed("Cebolla", "Blanca", "Verdura", "0.7", 18),
		seed("Papa", "Andina", "Verdura", "0.6", 35),
		seed("Brócoli", "Verde", "Verdura", "1.3", 15),
		seed("Lenteja", "Seca", "Menestra", "1.0", 20),
		seed("Frijol", "Negro", "Menestra", "1.1", 22),
		seed("Garbanzo", "Chico", "Menestra", "1.2", 18),
		seed("Arroz", "Integral", "Cereal", "0.7", 40),
		seed("Maíz", "Dulce", "Cereal", "0.8", 35),
		seed("Avena", "Fibra", "Cereal", "1.0", 30),
		seed("Pollo", "Pechuga", "Carne", "4.0", 15),
		seed("Res", "Lomo", "Carne", "5.0", 12),
		seed("Cerdo", "Costilla", "Carne", "4.5", 10),
		seed("Leche", "Entera", "Lacteo", "1.2", 25),
		seed("Queso", "Mozzarella", "Lacteo", "2.0", 20),
		seed("Yogur", "Natural", "Lacteo", "1.8", 18),
	}
)

func seed(name, description, category, price string, stock int) SeedProduct {
	return SeedProduct{Name: name, Description: description, Category: category, Price: decimal.RequireFromString(price), Stock: stock}
}
