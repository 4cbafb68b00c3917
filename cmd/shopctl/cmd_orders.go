package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"furniture-shop-backend/internal/order"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.Store()
		if len(store.CartItems()) == 0 {
			return fmt.Errorf("cart is empty")
		}
		if store.ShippingAddress().Address == "" {
			return fmt.Errorf("no shipping address set, run: shopctl address --street ...")
		}
		if store.PaymentMethod() == "" {
			return fmt.Errorf("no payment method set, run: shopctl payment cash-on-delivery")
		}

		created, err := client.Checkout()
		if err != nil {
			return err
		}
		fmt.Printf("Order %d placed\n", created.ID)
		printOrder(created)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders [id]",
	Short: "List your orders, or show one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			ord, err := client.Order(id)
			if err != nil {
				return err
			}
			printOrder(ord)
			return nil
		}

		res, err := client.MyOrders()
		if err != nil {
			return err
		}
		if len(res.Orders) == 0 {
			fmt.Println("No orders yet")
			return nil
		}
		for _, ord := range res.Orders {
			paid := "unpaid"
			if ord.IsPaid {
				paid = "paid"
			}
			fmt.Printf("%4d  %-11s %-7s %9.2f  %s\n", ord.ID, ord.Status, paid, ord.TotalPrice, ord.CreatedAt)
		}
		return nil
	},
}

var ordersPayCmd = &cobra.Command{
	Use:   "pay <order-id>",
	Short: "Mark one of your orders as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}
		ord, err := client.PayOrder(id, "")
		if err != nil {
			return err
		}
		fmt.Printf("Order %d is now %s\n", ord.ID, ord.Status)
		return nil
	},
}

func printOrder(ord order.Order) {
	fmt.Printf("order %d  status: %s\n", ord.ID, ord.Status)
	for _, item := range ord.Items {
		fmt.Printf("  %-35s %3d x %8.2f\n", item.Name, item.Quantity, item.Price)
	}
	fmt.Printf("  items: %.2f  shipping: %.2f  tax: %.2f  total: %.2f\n",
		ord.ItemsPrice, ord.ShippingPrice, ord.TaxPrice, ord.TotalPrice)
	if ord.IsPaid {
		fmt.Printf("  paid at %s\n", ord.PaidAt)
	}
	if ord.IsDelivered {
		fmt.Printf("  delivered at %s\n", ord.DeliveredAt)
	}
}

func init() {
	ordersCmd.AddCommand(ordersPayCmd)
}
