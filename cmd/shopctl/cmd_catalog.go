package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	listCategory string
	listSearch   string
	listSort     string
	listPage     int
)

var productsCmd = &cobra.Command{
	Use:   "products [id]",
	Short: "Browse the catalog, or show one product by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			return showProduct(id)
		}
		return listProducts()
	},
}

func init() {
	productsCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	productsCmd.Flags().StringVar(&listSearch, "search", "", "search name and description")
	productsCmd.Flags().StringVar(&listSort, "sort", "", "sort: price-low, price-high, rating")
	productsCmd.Flags().IntVar(&listPage, "page", 1, "page number")
}

func listProducts() error {
	q := url.Values{}
	if listCategory != "" {
		q.Set("category", listCategory)
	}
	if listSearch != "" {
		q.Set("search", listSearch)
	}
	if listSort != "" {
		q.Set("sort", listSort)
	}
	if listPage > 1 {
		q.Set("page", strconv.Itoa(listPage))
	}

	res, err := client.Products(q.Encode())
	if err != nil {
		return err
	}

	for _, p := range res.Products {
		stock := "in stock"
		if p.CountInStock == 0 {
			stock = "out of stock"
		}
		fmt.Printf("%4d  %-35s %9.2f  %-8s %s\n", p.ID, p.Name, p.Price, p.Category, stock)
	}
	fmt.Printf("\nPage %d of %d (%d products)\n", res.CurrentPage, res.TotalPages, res.TotalProducts)
	return nil
}

func showProduct(id int) error {
	p, err := client.Product(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s  $%.2f\n", p.Name, p.Price)
	if p.OriginalPrice != nil {
		fmt.Printf("  was $%.2f\n", *p.OriginalPrice)
	}
	fmt.Printf("  %s\n", p.Description)
	fmt.Printf("  category: %s  brand: %s  stock: %d\n", p.Category, p.Brand, p.CountInStock)
	if p.NumReviews > 0 {
		fmt.Printf("  rating: %.1f (%d reviews)\n", p.Rating, p.NumReviews)
		for _, r := range p.Reviews {
			fmt.Printf("    [%d/5] %s: %s\n", r.Rating, r.Name, strings.TrimSpace(r.Comment))
		}
	}
	return nil
}
